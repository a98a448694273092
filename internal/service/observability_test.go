package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/testutil"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.events = append(r.events, event)
}

func TestUseCaseObserver_ReceivesMoveFields(t *testing.T) {
	rec := &recordingObserver{}
	s := setupServices(t, rec)
	ctx := context.Background()

	a := create(t, s.nodes, testutil.NewTestNode("A"))
	b := create(t, s.nodes, testutil.NewTestNode("B", testutil.WithParent(a.ID)))
	create(t, s.nodes, testutil.NewTestCase(b.ID, "C"))
	d := create(t, s.nodes, testutil.NewTestNode("D"))

	_, err := s.nodes.Move(ctx, b.ID, &d.ID, 0)
	require.NoError(t, err)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, "node-move", last.Name)
	assert.True(t, last.Success)
	assert.NotEmpty(t, last.CorrelationID)
	assert.Equal(t, int64(1), last.Fields["paths_rewritten"])
	assert.Equal(t, "node-create", rec.events[0].Name)
}

func TestLogUseCaseObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:          "node-delete",
		CorrelationID: "abc",
		Duration:      3 * time.Millisecond,
		Err:           errors.New("node has children"),
		Fields:        map[string]any{"node_id": int64(7)},
	})

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "use_case=node-delete")
	assert.Contains(t, line, "correlation_id=abc")
	assert.Contains(t, line, "node_id=7")
	assert.Contains(t, line, `error="node has children"`)
}

func TestJSONLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogUseCaseObserver(&buf).ObserveUseCase(context.Background(), UseCaseEvent{
		Name:    "plan-create",
		Success: true,
	})
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"use_case":"plan-create"`)

	assert.IsType(t, NoopUseCaseObserver{}, NewJSONLogUseCaseObserver(nil))
}

func TestMetricsUseCaseObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewMetricsUseCaseObserver(reg)
	s := setupServices(t, NewMultiUseCaseObserver(obs, nil))
	ctx := context.Background()

	root := create(t, s.nodes, testutil.NewTestNode("Root"))
	create(t, s.nodes, testutil.NewTestNode("X", testutil.WithParent(root.ID)))
	y := create(t, s.nodes, testutil.NewTestNode("Y", testutil.WithParent(root.ID)))
	_, err := s.nodes.Reorder(ctx, y.ID, 0)
	require.NoError(t, err)
	assert.Error(t, s.nodes.Delete(ctx, root.ID, false))

	m := obs.(*metricsUseCaseObserver)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.failures.WithLabelValues("node-delete")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.rows.WithLabelValues("node-reorder", "orders_changed")))
	assert.Equal(t, 3, promtestutil.CollectAndCount(m.duration, "casetree_service_use_case_duration_seconds"))
}

// histogramCount sums the sample counts of the duration histogram series
// labelled with useCase.
func histogramCount(t *testing.T, g prometheus.Gatherer, useCase string) uint64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)

	var total uint64
	for _, mf := range families {
		if mf.GetName() != "casetree_service_use_case_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "use_case") == useCase {
				total += m.GetHistogram().GetSampleCount()
			}
		}
	}
	return total
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestMetricsUseCaseObserver_RecordsQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := setupServices(t, NewMetricsUseCaseObserver(reg))
	ctx := context.Background()

	root := create(t, s.nodes, testutil.NewTestNode("Root"))
	create(t, s.nodes, testutil.NewTestCase(root.ID, "Case"))

	_, err := s.queries.Subtree(ctx, root.ID, nil, domain.SubtreeFilter{})
	require.NoError(t, err)
	_, err = s.queries.DescendantCases(ctx, root.ID, true)
	require.NoError(t, err)
	_, err = s.queries.DescendantCases(ctx, 999, false)
	require.Error(t, err)

	assert.Equal(t, uint64(2), histogramCount(t, reg, "node-create"))
	assert.Equal(t, uint64(1), histogramCount(t, reg, "tree-subtree"))
	assert.Equal(t, uint64(2), histogramCount(t, reg, "tree-descendant-cases"))
}
