package main

import "algocamp_backend/internal/app"

func main() {
	app.Run()
}
