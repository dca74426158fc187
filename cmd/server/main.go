// Application server is the main server for the application
package main

import (
	"context"
	"os"

	"github.com/starquake/quizgen/cmd/server/app"
)

func main() {
	ctx := context.Background()
	if err := app.Run(ctx, os.Getenv, os.Stdout, nil); err != nil {
		os.Exit(1)
	}
}
