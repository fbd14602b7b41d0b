package main

import "github.com/revenuemediabot/DailycheckBot2025/cmd/dailycheck/root"

func main() {
	root.Execute()
}
