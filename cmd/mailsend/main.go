package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrelib/go-mail/cmd/mailsend/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
