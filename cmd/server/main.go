package main

import (
	"context"
	"fmt"
	"os"

	"github.com/theshibabasement/neuroflow/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	if err := a.Run(); err != nil {
		a.Log.Error("http server exited", "error", err)
		os.Exit(1)
	}
}
