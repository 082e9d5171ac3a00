package main

import "makeusbetter-backend/cmd"

func main() {
	cmd.Run()
}
