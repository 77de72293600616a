// Command memctl inspects memkit allocator layouts and measures allocator throughput.
package main

func main() {
	execute()
}
