package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"polar.sh/ghsync/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
