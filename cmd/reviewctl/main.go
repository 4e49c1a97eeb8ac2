// Package main implements reviewctl, a CLI for the reviewd gRPC service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/server"
)

var (
	// serverAddr is the reviewd gRPC address
	serverAddr string
	// rpcTimeout bounds each unary call
	rpcTimeout time.Duration
	// version information
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reviewctl",
	Short: "CLI for the CV review service",
	Long: `reviewctl submits CVs to reviewd, polls review jobs and downloads
completed reviews as spreadsheets.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultAddr(), "reviewd gRPC address")
	rootCmd.PersistentFlags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "per-call timeout")
}

func defaultAddr() string {
	if v := os.Getenv("REVIEWD_ADDR"); v != "" {
		return v
	}
	return "localhost:8080"
}

// dial opens a client connection to reviewd. Callers close the returned conn.
func dial() (server.ReviewServiceClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(64<<20)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	return server.NewReviewServiceClient(conn), conn, nil
}

// callContext derives a per-call context carrying a fresh request id.
func callContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := common.WithTimeout(parent, rpcTimeout)
	return metadata.AppendToOutgoingContext(ctx, "x-request-id", uuid.NewString()), cancel
}
