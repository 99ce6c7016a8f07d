package main

import "github.com/facegate/canteen/cmd"

func main() {
	cmd.Execute()
}
