package main

import "github.com/KaramelBytes/painel-emendas/cmd"

func main() {
	cmd.Execute()
}
