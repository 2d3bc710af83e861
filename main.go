package main

import "opentrail/cmd"

func main() {
	cmd.Execute()
}
