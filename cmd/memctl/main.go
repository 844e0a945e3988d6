// Command memctl runs memory-model driver scripts and exercises the address
// allocator from the command line.
package main

func main() {
	execute()
}
