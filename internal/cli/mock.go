package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/config"
	"github.com/five82/sagtrack/internal/logging"
	"github.com/five82/sagtrack/internal/mockapi"
)

func newMockCmd(rt *runtime) *cobra.Command {
	var listen, dataFile string
	var memory bool
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a local mock of the sag tracking backend",
		Long: "Serve the backend API with simulated live readings. Events, comments and config " +
			"are stored in --data and survive restarts unless --memory is set.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConsoleLog: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("listen") {
				listen = rt.cfg.Mock.Listen
			}
			switch {
			case memory:
				dataFile = ""
			case flags.Changed("data"):
				dataFile = config.ExpandPath(dataFile)
			default:
				dataFile = rt.cfg.Mock.DataFile
			}

			logger := rt.logger.Named(logging.MockAPI)
			logger.Info("mock backend starting",
				zap.String("listen", listen),
				zap.String("data", dataFile),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "mock backend on http://%s (metrics at /metrics)\n", listen)

			server := mockapi.NewServer(mockapi.OpenStore(dataFile, logger), logger)
			return server.Run(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default mock.listen from config)")
	cmd.Flags().StringVar(&dataFile, "data", "", "data file (default mock.data_file from config)")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep data in memory only")
	return cmd
}
