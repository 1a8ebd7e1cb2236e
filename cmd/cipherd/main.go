// Command cipherd runs the conversational honeypot engagement platform.
package main

import "github.com/perplext/cipherhoneypot/src/cmd"

func main() {
	cmd.Execute()
}
