package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pageaudit/internal/report"
	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/scanner"
)

func sampleReport() report.AuditReport {
	return report.Build(testRouteConstant, []scanner.ScanResult{
		passedResult("content:Terms", rules.CategoryContent, rules.SeverityMedium),
		failedResult("content:mailto:", rules.RuleKindPresence, rules.SeverityCritical),
		failedResult("no-console-log", rules.RuleKindAbsence, rules.SeverityHigh, scanner.Location{Line: 12, Column: 5}),
	})
}

func TestParseFormat(testInstance *testing.T) {
	testCases := []struct {
		rawValue       string
		expectedFormat report.Format
		expectError    bool
	}{
		{rawValue: "", expectedFormat: report.FormatText},
		{rawValue: "TEXT", expectedFormat: report.FormatText},
		{rawValue: " json ", expectedFormat: report.FormatJSON},
		{rawValue: "csv", expectedFormat: report.FormatCSV},
		{rawValue: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		format, parseError := report.ParseFormat(testCase.rawValue)
		if testCase.expectError {
			require.Error(testInstance, parseError)
			continue
		}
		require.NoError(testInstance, parseError)
		require.Equal(testInstance, testCase.expectedFormat, format)
	}
	require.Equal(testInstance, []string{"text", "json", "csv"}, report.Formats())
}

func TestNewEmitterValidation(testInstance *testing.T) {
	_, missingWriterError := report.NewEmitter(nil, report.FormatText)
	require.Error(testInstance, missingWriterError)

	_, formatError := report.NewEmitter(&bytes.Buffer{}, report.Format("yaml"))
	require.Error(testInstance, formatError)
}

func TestEmitText(testInstance *testing.T) {
	auditReport := sampleReport()
	var output bytes.Buffer
	emitter, emitterError := report.NewEmitter(&output, "")
	require.NoError(testInstance, emitterError)
	require.NoError(testInstance, emitter.Emit(auditReport))

	expected := strings.Join([]string{
		"Route: /legal/terms",
		"Report: " + auditReport.ID,
		"Status: FAIL",
		"Categories:",
		"  code     FAIL  0/2",
		"  content  PASS  1/1",
		"Issues:",
		"  1. [CRITICAL] content:mailto:: content:mailto: description (MissingRequiredElement)",
		"  2. [HIGH] no-console-log: no-console-log description (ForbiddenPatternFound) at line 12, column 5",
		"",
	}, "\n")
	require.Equal(testInstance, expected, output.String())
}

func TestEmitTextWithoutIssues(testInstance *testing.T) {
	var output bytes.Buffer
	emitter, emitterError := report.NewEmitter(&output, report.FormatText)
	require.NoError(testInstance, emitterError)
	require.NoError(testInstance, emitter.Emit(report.Build(testRouteConstant, nil)))
	require.Contains(testInstance, output.String(), "Status: PASS\n")
	require.Contains(testInstance, output.String(), "Issues: none\n")
	require.NotContains(testInstance, output.String(), "Categories:")
}

func TestEmitJSON(testInstance *testing.T) {
	auditReport := sampleReport()
	var output bytes.Buffer
	emitter, emitterError := report.NewEmitter(&output, report.FormatJSON)
	require.NoError(testInstance, emitterError)
	require.NoError(testInstance, emitter.Emit(auditReport))

	var decoded map[string]any
	require.NoError(testInstance, json.Unmarshal(output.Bytes(), &decoded))
	require.Equal(testInstance, "fail", decoded["status"])
	require.Equal(testInstance, auditReport.ID, decoded["id"])

	issues, isList := decoded["issues"].([]any)
	require.True(testInstance, isList)
	require.Len(testInstance, issues, 2)
	firstIssue := issues[0].(map[string]any)
	require.NotContains(testInstance, firstIssue, "location")
	secondIssue := issues[1].(map[string]any)
	require.Equal(testInstance, map[string]any{"line": float64(12), "column": float64(5)}, secondIssue["location"])
}

func TestEmitCSV(testInstance *testing.T) {
	var output bytes.Buffer
	emitter, emitterError := report.NewEmitter(&output, report.FormatCSV)
	require.NoError(testInstance, emitterError)
	require.NoError(testInstance, emitter.Emit(sampleReport()))

	records, readError := csv.NewReader(&output).ReadAll()
	require.NoError(testInstance, readError)
	require.Equal(testInstance, [][]string{
		{"route", "severity", "rule", "category", "finding", "description", "line", "column"},
		{"/legal/terms", "critical", "content:mailto:", "code", "MissingRequiredElement", "content:mailto: description", "", ""},
		{"/legal/terms", "high", "no-console-log", "code", "ForbiddenPatternFound", "no-console-log description", "12", "5"},
	}, records)
}

func TestEmitIsByteIdentical(testInstance *testing.T) {
	for _, format := range []report.Format{report.FormatText, report.FormatJSON, report.FormatCSV} {
		var first, second bytes.Buffer
		firstEmitter, _ := report.NewEmitter(&first, format)
		secondEmitter, _ := report.NewEmitter(&second, format)
		require.NoError(testInstance, firstEmitter.Emit(sampleReport()))
		require.NoError(testInstance, secondEmitter.Emit(sampleReport()))
		require.Equal(testInstance, first.Bytes(), second.Bytes(), string(format))
	}
}

func TestEmitAllWritesOneDocument(testInstance *testing.T) {
	const secondRouteConstant = "/pricing"
	auditReports := []report.AuditReport{
		sampleReport(),
		report.Build(secondRouteConstant, []scanner.ScanResult{
			failedResult("no-console-log", rules.RuleKindAbsence, rules.SeverityHigh, scanner.Location{Line: 3, Column: 1}),
		}),
	}

	testCases := []struct {
		name   string
		format report.Format
		verify func(*testing.T, []byte)
	}{
		{
			name:   "csv single header",
			format: report.FormatCSV,
			verify: func(testInstance *testing.T, output []byte) {
				records, readError := csv.NewReader(bytes.NewReader(output)).ReadAll()
				require.NoError(testInstance, readError)
				require.Len(testInstance, records, 4)
				require.Equal(testInstance, "route", records[0][0])
				require.Equal(testInstance, testRouteConstant, records[1][0])
				require.Equal(testInstance, testRouteConstant, records[2][0])
				require.Equal(testInstance, []string{secondRouteConstant, "high", "no-console-log", "code", "ForbiddenPatternFound", "no-console-log description", "3", "1"}, records[3])
			},
		},
		{
			name:   "json array",
			format: report.FormatJSON,
			verify: func(testInstance *testing.T, output []byte) {
				var decoded []map[string]any
				require.NoError(testInstance, json.Unmarshal(output, &decoded))
				require.Len(testInstance, decoded, 2)
				require.Equal(testInstance, testRouteConstant, decoded[0]["route"])
				require.Equal(testInstance, secondRouteConstant, decoded[1]["route"])
			},
		},
		{
			name:   "text separated by blank line",
			format: report.FormatText,
			verify: func(testInstance *testing.T, output []byte) {
				require.Contains(testInstance, string(output), "\n\nRoute: "+secondRouteConstant+"\n")
				require.True(testInstance, strings.HasPrefix(string(output), "Route: "+testRouteConstant+"\n"))
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			emitter, emitterError := report.NewEmitter(&output, testCase.format)
			require.NoError(testInstance, emitterError)
			require.NoError(testInstance, emitter.EmitAll(auditReports))
			testCase.verify(testInstance, output.Bytes())
		})
	}
}

func TestEmitAllWithoutReports(testInstance *testing.T) {
	testCases := []struct {
		name     string
		format   report.Format
		expected string
	}{
		{name: "json empty array", format: report.FormatJSON, expected: "[]\n"},
		{name: "csv header only", format: report.FormatCSV, expected: "route,severity,rule,category,finding,description,line,column\n"},
		{name: "text empty", format: report.FormatText, expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			emitter, emitterError := report.NewEmitter(&output, testCase.format)
			require.NoError(testInstance, emitterError)
			require.NoError(testInstance, emitter.EmitAll(nil))
			require.Equal(testInstance, testCase.expected, output.String())
		})
	}
}

func TestEmitCSVWritesHeaderOncePerEmitter(testInstance *testing.T) {
	var output bytes.Buffer
	emitter, emitterError := report.NewEmitter(&output, report.FormatCSV)
	require.NoError(testInstance, emitterError)
	require.NoError(testInstance, emitter.Emit(sampleReport()))
	require.NoError(testInstance, emitter.Emit(sampleReport()))
	require.Equal(testInstance, 1, strings.Count(output.String(), "route,severity,rule"))
}
