package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// ErrorAnalyzer turns sendTransaction failures into SubmissionError values.
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// Analyze extracts code, message, simulation logs and the stale-blockhash flag.
// Errors that are not JSON-RPC errors (transport failures) are wrapped as is.
func (ea *ErrorAnalyzer) Analyze(err error) *SubmissionError {
	if err == nil {
		return nil
	}

	result := &SubmissionError{Message: err.Error(), Err: err}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return result
	}
	result.Code = rpcErr.Code
	result.Message = rpcErr.Message

	// Check if this is a transaction simulation error
	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if logs, ok := dataMap["logs"].([]interface{}); ok {
			for _, entry := range logs {
				if line, ok := entry.(string); ok {
					result.Logs = append(result.Logs, line)
				}
			}
		}

		switch v := dataMap["err"].(type) {
		case string:
			if v == "BlockhashNotFound" {
				result.Stale = true
			}
		case map[string]interface{}:
			if ixErr, ok := v["InstructionError"]; ok {
				result.InstructionError = ixErr
			}
		}
	}

	if strings.Contains(strings.ToLower(rpcErr.Message), "blockhash not found") {
		result.Stale = true
	}

	if line := result.ProgramFailure(); line != "" {
		ea.logger.Warn("Program failure in preflight",
			zap.Int("code", result.Code),
			zap.String("log", line))
	}

	return result
}

// FormatErrorAnalysis formats the error analysis for logging or display
func (ea *ErrorAnalyzer) FormatErrorAnalysis(e *SubmissionError) string {
	view := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
		"stale":   e.Stale,
	}
	if len(e.Logs) > 0 {
		view["logs"] = e.Logs
	}
	if e.InstructionError != nil {
		view["instruction_error"] = e.InstructionError
	}
	jsonBytes, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting analysis: %v", err)
	}
	return string(jsonBytes)
}
