package main

import "github.com/llehouerou/mixtape/cmd"

func main() {
	cmd.Execute()
}
