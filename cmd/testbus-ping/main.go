// testbus-ping runs a synchronous request/reply exchange against an
// in-process echo consumer and prints the round-trip time. It is a smoke
// check for the direct sync endpoint wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	testbus "github.com/glimte/testbus-go"
	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/messaging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

func main() {
	var (
		queueName string
		payload   string
		timeout   time.Duration
		quiet     bool
	)

	rootCmd := &cobra.Command{
		Use:     "testbus-ping",
		Short:   "Smoke-test a synchronous direct exchange",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(queueName, payload, timeout, quiet)
		},
	}

	rootCmd.Flags().StringVar(&queueName, "queue", "ping", "destination queue name")
	rootCmd.Flags().StringVar(&payload, "message", "ping", "request payload")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "reply timeout")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "disable lifecycle reporting")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(queueName, payload string, timeout time.Duration, quiet bool) error {
	ctx := context.Background()
	client := testbus.NewClient(testbus.WithReporting(!quiet))

	endpoint, err := client.DirectSyncEndpoint("ping", queueName,
		messaging.WithTimeout(timeout),
		messaging.WithPollingInterval(10*time.Millisecond))
	if err != nil {
		return err
	}

	go func() {
		tc := client.NewTestContext()
		request, err := endpoint.Consumer().Receive(ctx, tc, timeout)
		if err != nil {
			return
		}
		reply := contracts.NewMessage(fmt.Sprintf("pong: %v", request.GetPayload()))
		_ = endpoint.Consumer().Send(ctx, reply, tc)
	}()

	tc := client.NewTestContext()
	start := time.Now()
	if err := endpoint.Producer().Send(ctx, contracts.NewMessage(payload), tc); err != nil {
		return err
	}
	reply, err := endpoint.Producer().Receive(ctx, tc)
	if err != nil {
		return err
	}

	fmt.Printf("%v (%s)\n", reply.GetPayload(), time.Since(start).Round(time.Microsecond))
	return nil
}
