package main

import "log"

func printHelp() {
	log.Println("Usage: cli <command>")
	log.Println("\tinit <target> [json|yaml] \tWrites a default server/config file into the <target> directory")
	log.Println()
	log.Println("Entries are added with POST /entries or POST /entries/add. Set \"legacyGetAdd\": true in")
	log.Println("server/config to also accept GET /entries/add for older clients.")
	log.Println()
}
