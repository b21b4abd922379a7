package main

import "github.com/jeffreymutethia/Seattle-Pulse-sub000/internal/cmd"

func main() {
	cmd.Execute()
}
