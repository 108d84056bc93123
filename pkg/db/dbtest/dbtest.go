// Package dbtest opens throwaway SQLite databases carrying the ledger schema
// for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const schema = `
CREATE TABLE wallets (
  wallet_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  balance NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE wallet_transactions (
  txn_id TEXT PRIMARY KEY,
  wallet_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  direction TEXT NOT NULL,
  reference_id TEXT,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  balance_after_txn NUMERIC NOT NULL,
  created_at DATETIME
);
CREATE TABLE coupons (
  coupon_id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  discount_type TEXT NOT NULL,
  discount_value NUMERIC NOT NULL,
  max_discount NUMERIC,
  min_order_value NUMERIC,
  usage_limit_per_user INTEGER,
  valid_from DATETIME NOT NULL,
  valid_to DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'active'
);
CREATE TABLE coupon_usages (
  coupon_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  usage_count INTEGER NOT NULL DEFAULT 0,
  last_used_at DATETIME NOT NULL,
  PRIMARY KEY (coupon_id, user_id)
);
CREATE TABLE bookings (
  booking_id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL,
  hotel_id TEXT NOT NULL,
  hotel_name TEXT NOT NULL DEFAULT '',
  hotel_type TEXT NOT NULL DEFAULT '',
  hotel_address TEXT NOT NULL DEFAULT '',
  hotel_contact TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL,
  guest_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  check_in_date DATE NOT NULL,
  check_out_date DATE,
  guest_count INTEGER NOT NULL DEFAULT 0,
  adults INTEGER NOT NULL DEFAULT 0,
  children INTEGER NOT NULL DEFAULT 0,
  total_rooms_booked INTEGER NOT NULL DEFAULT 1,
  total_days_at_stay INTEGER NOT NULL DEFAULT 0,
  months INTEGER NOT NULL DEFAULT 0,
  room_type TEXT NOT NULL DEFAULT '',
  room_price_per_day NUMERIC NOT NULL DEFAULT 0,
  room_price_per_month NUMERIC NOT NULL DEFAULT 0,
  all_days_price NUMERIC NOT NULL DEFAULT 0,
  gst NUMERIC NOT NULL DEFAULT 0,
  original_amount NUMERIC NOT NULL,
  final_payable_amount NUMERIC NOT NULL,
  amount_paid_online NUMERIC NOT NULL DEFAULT 0,
  due_amount_at_hotel NUMERIC NOT NULL DEFAULT 0,
  payment_method_type TEXT NOT NULL,
  paid_via TEXT NOT NULL DEFAULT '',
  payment_status TEXT NOT NULL DEFAULT 'PENDING',
  booking_status TEXT NOT NULL DEFAULT 'PENDING',
  transaction_id TEXT NOT NULL DEFAULT '',
  wallet_used INTEGER NOT NULL DEFAULT 0,
  wallet_amount_deducted NUMERIC NOT NULL DEFAULT 0,
  coupon_code TEXT NOT NULL DEFAULT '',
  coupon_discount_amount NUMERIC NOT NULL DEFAULT 0,
  last_payment_record_id TEXT,
  refund_status TEXT NOT NULL DEFAULT '',
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE payment_transactions (
  payment_record_id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  partner_id TEXT NOT NULL,
  hotel_id TEXT NOT NULL,
  gateway TEXT NOT NULL DEFAULT 'Razorpay',
  gateway_order_id TEXT NOT NULL DEFAULT '',
  gateway_payment_id TEXT NOT NULL DEFAULT '',
  gateway_signature TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL DEFAULT 'INR',
  payment_status TEXT NOT NULL,
  failure_reason TEXT,
  amount NUMERIC NOT NULL,
  attempt_no INTEGER NOT NULL,
  source TEXT NOT NULL,
  is_refunded INTEGER NOT NULL DEFAULT 0,
  refund_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  UNIQUE (booking_id, attempt_no)
);
CREATE TABLE partner_finance (
  partner_id TEXT PRIMARY KEY,
  account_holder_name TEXT NOT NULL DEFAULT '',
  bank_name TEXT NOT NULL DEFAULT '',
  account_number TEXT UNIQUE,
  ifsc_swift TEXT NOT NULL DEFAULT '',
  account_type TEXT NOT NULL DEFAULT '',
  pan_tax_id TEXT UNIQUE,
  payout_type TEXT NOT NULL DEFAULT 'Monthly',
  commission_percentage NUMERIC NOT NULL DEFAULT 0,
  total_revenue NUMERIC NOT NULL DEFAULT 0,
  net_revenue NUMERIC NOT NULL DEFAULT 0,
  pending_payout NUMERIC NOT NULL DEFAULT 0,
  paid_payout NUMERIC NOT NULL DEFAULT 0,
  last_payout_date DATETIME,
  notification_viewed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE partner_transactions (
  transaction_id TEXT PRIMARY KEY,
  partner_id TEXT NOT NULL,
  transaction_date DATETIME NOT NULL,
  total_amount NUMERIC NOT NULL,
  withdrawal_amount NUMERIC NOT NULL,
  balance_amount NUMERIC NOT NULL,
  status TEXT NOT NULL,
  transaction_type TEXT NOT NULL,
  comments TEXT NOT NULL DEFAULT ''
);
CREATE TABLE referrals (
  referral_id TEXT PRIMARY KEY,
  referrer_user_id TEXT NOT NULL,
  referred_user_id TEXT NOT NULL,
  reward_amount NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME
);
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);
CREATE UNIQUE INDEX idx_outbox_dlq_event_id ON outbox_dlq (event_id);`

// New returns a gorm handle on a fresh in-memory database named after the
// test, with every ledger table created.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", sanitize(t.Name()))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		require.NoError(t, conn.Exec(stmt).Error)
	}

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
}
