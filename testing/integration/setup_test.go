// Package integration exercises bdocfilter against a real MongoDB server
// started via testcontainers-go.
package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	sharedMongoContainer *mongoContainer
	mongoOnce            sync.Once
	mongoStarted         bool
)

// TestMain runs the package's tests and, if one of them started the shared
// MongoDB container through getMongoContainer, tears it down afterwards.
func TestMain(m *testing.M) {
	code := m.Run()

	ctx := context.Background()
	if mongoStarted && sharedMongoContainer != nil {
		if sharedMongoContainer.client != nil {
			_ = sharedMongoContainer.client.Disconnect(ctx)
		}
		if sharedMongoContainer.container != nil {
			_ = sharedMongoContainer.container.Terminate(ctx)
		}
	}

	os.Exit(code)
}

type mongoContainer struct {
	container *mongodb.MongoDBContainer
	client    *mongo.Client
	connStr   string
}

// getMongoContainer returns the shared container, starting it on first use.
func getMongoContainer(t *testing.T) *mongoContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	mongoOnce.Do(func() {
		ctx := context.Background()

		container, err := mongodb.Run(ctx,
			"docker.io/mongo:7",
			testcontainers.WithWaitStrategy(
				wait.ForLog("Waiting for connections").WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("failed to start mongodb container: %v", err)
		}

		connStr, err := container.ConnectionString(ctx)
		if err != nil {
			log.Fatalf("failed to get connection string: %v", err)
		}

		client, err := mongo.Connect(options.Client().ApplyURI(connStr))
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.Fatalf("failed to ping mongodb: %v", err)
		}

		sharedMongoContainer = &mongoContainer{container: container, client: client, connStr: connStr}
		mongoStarted = true
	})

	return sharedMongoContainer
}
