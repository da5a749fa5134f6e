package main

import (
	"context"
	"fmt"
	"os"

	"gitlab.com/timkado/api/staff-auth-service/internal/bootstrap"
	"gitlab.com/timkado/api/staff-auth-service/pkg/contextkeys"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = context.WithValue(ctx, contextkeys.RequestIDKey, "app-main")

	app, cleanup, err := bootstrap.InitializeApp(ctx)
	if err != nil {
		// The application logger is not available yet.
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		cancel()
		os.Exit(1)
	}

	runErr := app.Run(ctx)
	cancel()
	cleanup()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Application run failed: %v\n", runErr)
		os.Exit(1)
	}
	fmt.Println("Application exited gracefully.")
}
