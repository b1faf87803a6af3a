// Command evtxctl inspects Windows Event Log (.evtx) files.
package main

func main() {
	execute()
}
