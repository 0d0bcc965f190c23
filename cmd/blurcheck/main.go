// Package main provides the blurcheck CLI.
//
// blurcheck scores local photos or image URLs for blur with the same
// pipeline the HTTP API uses.
//
// Usage:
//
//	blurcheck score photo.jpg
//	blurcheck score --json https://example.com/a.jpg b.png
//
// See --help for all available options.
package main

func main() {
	Execute()
}
