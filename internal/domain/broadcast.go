// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "context"

// TenantBroadcaster delivers realtime frames (status, audio) to every
// subscriber of a tenant's channel. Delivery is best effort: broken
// subscribers are pruned, never retried, and a failed send must not fail
// the broadcast for the remaining subscribers.
type TenantBroadcaster interface {
	Broadcast(ctx context.Context, tenant string, message any)
}
