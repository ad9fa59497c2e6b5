// Command ganttctl loads a task file into a Gantt store, runs commands
// against it and prints the derived timeline.
package main

func main() {
	Execute()
}
