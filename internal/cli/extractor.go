package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/hr-assistant/internal/extractor"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

func newExtractorCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extractor",
		Short: "Slot extractor utilities",
	}
	cmd.AddCommand(newExtractorServeCmd(opts), newExtractorParseCmd())
	return cmd
}

func newExtractorServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rule-based extractor over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger(cmd.ErrOrStderr())

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			s := grpc.NewServer()
			extractor.RegisterGRPCServer(s, extractor.NewRules())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				logger.Info("Stopping extractor server")
				s.GracefulStop()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "extractor listening on %s\n", lis.Addr())
			return s.Serve(lis)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":50051", "Listen address")
	return cmd
}

func newExtractorParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <message>",
		Short: "Print the intent and slots the rule-based extractor finds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := extractor.NewRules().Extract(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
}
