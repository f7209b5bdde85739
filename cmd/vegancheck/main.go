// Package main provides the entry point for the vegancheck CLI.
//
// vegancheck checks product pages for vegan status. It loads a page, finds
// its purchase controls, runs the page through the same page, background
// and panel contexts the browser extension uses, and reports the verdict.
//
// Usage:
//
//	vegancheck analyze <url-or-file>...
//	vegancheck history list
//	vegancheck ingredients add <ingredient>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
