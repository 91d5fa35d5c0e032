package main

import (
	"bufio"
	"encoding/json"
	"log"
	"os"

	"github.com/nci/oceanl2/hdf/gdal"
	"github.com/nci/oceanl2/satin"
)

func ensure(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {

	if len(os.Args) != 2 {
		log.Fatal("Please provide a path to a level-2 file or '-' for reading from stdin")
	}

	path := os.Args[1]

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Scan()
		path = scanner.Text()
	}

	inv, err := satin.Inventory(gdal.NewOpener(), path)
	ensure(err)

	out, err := json.Marshal(inv)
	ensure(err)

	_, err = os.Stdout.Write(out)
	ensure(err)
}
