// Command hashpassword prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpassword < password.txt
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"timetableadmin/internal/adapters/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "read password:", err)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "empty password")
		os.Exit(1)
	}
	hash, err := auth.NewBcrypt(auth.DefaultCost).Hash(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
