// Command jots serves a live view of a Go object graph to v2c managers
// and renders its MIB definition.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
