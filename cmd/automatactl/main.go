// Command automatactl builds, inspects and validates aggregated save files.
package main

func main() {
	Execute()
}
