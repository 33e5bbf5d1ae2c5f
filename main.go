package main

import "github.com/andresmejia3/facerec/cmd"

func main() {
	cmd.Execute()
}
