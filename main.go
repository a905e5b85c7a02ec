// Package main is the entry point for the campusqa binary.
package main

import "github.com/campusqa/campusqa/cmd"

func main() {
	cmd.Execute()
}
