package main

import (
	"fmt"
	"os"

	"github.com/kaytu-io/assistant-relay/services/relay"
)

func main() {
	if err := relay.Command().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
