package main

import "github.com/xiaot623/chatbot/cmd"

func main() {
	cmd.Execute()
}
