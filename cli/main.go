package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "init":
		if len(os.Args) < 3 {
			printHelp()
			return
		}

		format := "json"
		if len(os.Args) > 3 {
			format = os.Args[3]
		}
		err := initProject(os.Args[2], format)
		if err != nil {
			log.Fatalln(err)
		}
	default:
		printHelp()
	}
}
