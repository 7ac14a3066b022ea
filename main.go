package main

import "github.com/klytics/unmerge/cmd"

func main() {
	cmd.Execute()
}
