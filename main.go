package main

import "github.com/frahmantamala/lms-backend/cmd"

func main() {
	cmd.Execute()
}
