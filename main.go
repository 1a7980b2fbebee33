// Command facet evaluates CAD selector queries and design scripts.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
