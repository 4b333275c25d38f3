package main

import "github.com/ValentinKolb/prefKV/cmd"

func main() {
	cmd.Execute()
}
