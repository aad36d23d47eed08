// Command heapctl drives a heapkit allocator from scripts and random
// workloads and renders the resulting heap.
package main

func main() {
	execute()
}
