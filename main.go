package main

import "github.com/shouni/go-link-gallery/cmd"

func main() {
	cmd.Execute()
}
