package main

import "slack-thread-dump-tap/internal/cli"

func main() {
	cli.Execute()
}
