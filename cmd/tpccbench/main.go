package main

import (
	"github.com/hhkbp2/tpccbench"
)

func main() {
	tpccbench.Main()
}
