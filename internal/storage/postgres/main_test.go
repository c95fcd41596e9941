//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// DATABASE_URI points the suite at an existing server; otherwise a
	// throwaway postgres container is started via compose.
	databaseURI := os.Getenv("DATABASE_URI")

	var dc tc.ComposeStack
	if databaseURI == "" {
		stack, err := tc.NewDockerCompose("testdata/docker-compose.test.yml")
		if err != nil {
			log.Fatalf("compose init: %v", err)
		}
		dc = stack

		err = dc.
			WaitForService("postgres", wait.ForLog("database system is ready to accept connections").WithOccurrence(2)).
			Up(ctx, tc.Wait(true))
		if err != nil {
			log.Fatalf("compose up: %v", err)
		}

		pg, err := dc.ServiceContainer(ctx, "postgres")
		if err != nil {
			log.Fatalf("postgres container: %v", err)
		}

		host, err := pg.Host(ctx)
		if err != nil {
			log.Fatalf("host: %v", err)
		}

		mappedPort, err := pg.MappedPort(ctx, "5432/tcp")
		if err != nil {
			log.Fatalf("mapped port: %v", err)
		}

		databaseURI = fmt.Sprintf("postgres://products:products@%s:%s/products?sslmode=disable", host, mappedPort.Port())
		log.Printf("postgres available at %s", databaseURI)
	}

	pool, err := NewPool(ctx, databaseURI)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	testPool = pool
	result := m.Run()

	pool.Close()
	if dc != nil {
		if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
			log.Printf("compose down: %v", err)
		}
	}

	return result
}
