package main

import "github.com/shouni/gemini-image-editor/cmd"

func main() {
	cmd.Execute()
}
