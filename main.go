package main

import "github.com/Deokateoer1/ksef-checklist-builder/cmd"

func main() {
	cmd.Execute()
}
