// Command xlsdump inspects the containers and records of xls files.
package main

func main() {
	execute()
}
