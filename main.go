package main

import "github.com/elstrm2/NutritionTracker/cmd/tracker"

func main() {
	tracker.Execute()
}
