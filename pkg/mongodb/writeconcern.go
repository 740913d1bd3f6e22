package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CommandError reports that a getLastError probe reply was malformed: zero
// or more than one reply document, or the legacy query-failure flag set.
type CommandError struct {
	Command bson.D
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command error: %s (command=%v)", e.Reason, e.Command)
}

// NotPrimaryOrRecoveringError reports that the probe reply indicates the
// targeted node cannot currently accept writes. Callers should retry
// against a different node.
type NotPrimaryOrRecoveringError struct {
	Message string
}

func (e *NotPrimaryOrRecoveringError) Error() string {
	return fmt.Sprintf("not primary or recovering: %s", e.Message)
}

// WriteConcernError reports a logical write failure reported by the server
// in a getLastError probe reply.
type WriteConcernError struct {
	Code    int
	Message string
}

func (e *WriteConcernError) Error() string {
	return fmt.Sprintf("write concern error (code %d): %s", e.Code, e.Message)
}

// WriteConcern carries the caller's acknowledgement preferences. A nil/unset
// field is omitted from the getLastError probe entirely rather than sent
// with a zero value.
type WriteConcern struct {
	W        any
	WTimeout *int64 // milliseconds
	FSync    *bool
	Journal  *bool
}

func (wc WriteConcern) empty() bool {
	return wc.W == nil && wc.WTimeout == nil && wc.FSync == nil && wc.Journal == nil
}

// ProbeSender executes one command against the connection a preceding write
// batch was sent on and returns the reply documents it received. Actually
// performing that I/O is the caller's responsibility (network transport is
// out of scope here); this package only builds the command and interprets
// the reply.
type ProbeSender func(ctx context.Context, cmd bson.D) ([]bson.Raw, error)

// AwaitWriteConcern constructs a getLastError probe carrying wc's fields,
// each included only if set, sends it via send, and interprets the single
// expected reply. When ack is false no probe is sent and (nil, nil) is
// returned, mirroring a write issued with no requested acknowledgement.
func AwaitWriteConcern(ctx context.Context, send ProbeSender, ack bool, wc WriteConcern) (bson.D, error) {
	if !ack {
		return nil, nil
	}
	cmd := buildGetLastErrorCommand(wc)
	replies, err := send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return interpretProbeReply(cmd, replies)
}

func buildGetLastErrorCommand(wc WriteConcern) bson.D {
	cmd := bson.D{{Key: "getLastError", Value: 1}}
	if wc.empty() {
		return cmd
	}
	if wc.W != nil {
		cmd = append(cmd, bson.E{Key: "w", Value: wc.W})
	}
	if wc.WTimeout != nil {
		cmd = append(cmd, bson.E{Key: "wtimeout", Value: *wc.WTimeout})
	}
	if wc.FSync != nil {
		cmd = append(cmd, bson.E{Key: "fsync", Value: *wc.FSync})
	}
	if wc.Journal != nil {
		cmd = append(cmd, bson.E{Key: "j", Value: *wc.Journal})
	}
	return cmd
}

func interpretProbeReply(cmd bson.D, replies []bson.Raw) (bson.D, error) {
	if len(replies) != 1 {
		return nil, &CommandError{Command: cmd, Reason: fmt.Sprintf("expected exactly 1 reply document, got %d", len(replies))}
	}
	var reply bson.D
	if err := bson.Unmarshal(replies[0], &reply); err != nil {
		return nil, &CommandError{Command: cmd, Reason: fmt.Sprintf("malformed reply: %v", err)}
	}
	if hasQueryFailure(reply) {
		return nil, &CommandError{Command: cmd, Reason: "query failure flag set"}
	}
	if msg, ok := notPrimaryMessage(reply); ok {
		return nil, &NotPrimaryOrRecoveringError{Message: msg}
	}
	if code, msg, ok := writeConcernFailure(reply); ok {
		return nil, &WriteConcernError{Code: code, Message: msg}
	}
	return reply, nil
}

func hasQueryFailure(reply bson.D) bool {
	_, ok := stringField(reply, "$err")
	return ok
}

var notPrimaryPhrases = []string{"not primary", "node is recovering", "not master"}

func notPrimaryMessage(reply bson.D) (string, bool) {
	msg, ok := stringField(reply, "errmsg")
	if !ok {
		return "", false
	}
	lower := strings.ToLower(msg)
	for _, phrase := range notPrimaryPhrases {
		if strings.Contains(lower, phrase) {
			return msg, true
		}
	}
	return "", false
}

func writeConcernFailure(reply bson.D) (int, string, bool) {
	if errMsg, ok := stringField(reply, "err"); ok && errMsg != "" {
		code, _ := numberField(reply, "code")
		return int(code), errMsg, true
	}
	if okVal, ok := numberField(reply, "ok"); ok && okVal == 0 {
		msg, _ := stringField(reply, "errmsg")
		code, _ := numberField(reply, "code")
		return int(code), msg, true
	}
	return 0, "", false
}

func stringField(doc bson.D, key string) (string, bool) {
	for _, e := range doc {
		if e.Key == key {
			s, ok := e.Value.(string)
			return s, ok
		}
	}
	return "", false
}

func numberField(doc bson.D, key string) (float64, bool) {
	for _, e := range doc {
		if e.Key != key {
			continue
		}
		switch v := e.Value.(type) {
		case int32:
			return float64(v), true
		case int64:
			return float64(v), true
		case float64:
			return float64(v), true
		}
	}
	return 0, false
}
