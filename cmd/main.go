package main

import "github.com/proctoriq/proctoriq/internal/cli"

func main() {
	cli.Execute()
}
