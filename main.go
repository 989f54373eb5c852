package main

import (
	"log"

	"github.com/chaos-io/iconbg/rembg"
)

func main() {
	inputPath := "assets/original_icon.jpg"
	outputPath := "assets/icon.png"

	if err := rembg.RemoveWhiteBackground(inputPath, outputPath); err != nil {
		log.Fatal(err)
	}
}
