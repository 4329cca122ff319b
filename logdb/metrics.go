// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/tierpool/tierpool/metrics"
)

var (
	metricCriteriaLengthBucket = metrics.LazyLoadHistogram("logdb_criteria_length_bucket", []int64{0, 2, 5, 10, 25, 100})
	metricEventQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket          = metrics.LazyLoadHistogram("logdb_query_limit_bucket", []int64{0, 5, 10, 25, 50, 100, 250, 500, 1000})
	metricWrittenEvents        = metrics.LazyLoadCounter("logdb_written_event_count")
	metricStmtCacheHitRate     = metrics.LazyLoadGauge("logdb_stmt_cache_hit_permille")
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().Observe(int64(len(filter.CriteriaSet)))
	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}
	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().Observe(int64(limit))
	}

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0)
		if c.Address != nil {
			paramsUsed = append(paramsUsed, "address")
		}
		if c.Name != "" {
			paramsUsed = append(paramsUsed, "name")
		}
		if c.Actor != nil {
			paramsUsed = append(paramsUsed, "actor")
		}
		if c.TokenID != nil {
			paramsUsed = append(paramsUsed, "tokenID")
		}
		metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
