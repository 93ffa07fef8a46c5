package main

import (
	"context"
	"time"
)

func (cli *commandLine) sweep() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := cli.codeRepo.DeleteExpiredCodes(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	logger.Printf("purged %d expired share code(s)\n", n)
	return nil
}
