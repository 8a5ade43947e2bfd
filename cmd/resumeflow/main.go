package main

import (
	"context"
	"os"
)

func main() {
	err := newApp(os.Stdout).Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
