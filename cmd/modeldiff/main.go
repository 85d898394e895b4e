// Package main is the entry point for modeldiff.
package main

func main() {
	Execute()
}
