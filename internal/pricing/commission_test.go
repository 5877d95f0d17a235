package pricing

import (
    "testing"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
    t.Helper()
    d, err := decimal.NewFromString(s)
    if err != nil {
        t.Fatalf("bad decimal %q: %v", s, err)
    }
    return d
}

func rule(t *testing.T, hostRate, hostFixed, clientRate, clientFixed string) model.CommissionRule {
    t.Helper()
    return model.CommissionRule{
        HostRate:    dec(t, hostRate),
        HostFixed:   dec(t, hostFixed),
        ClientRate:  dec(t, clientRate),
        ClientFixed: dec(t, clientFixed),
    }
}

func TestCompute(t *testing.T) {
    cases := []struct {
        name                                                 string
        base                                                 string
        rule                                                 model.CommissionRule
        hostReceives, hostCommission, clientCommission, pays string
    }{
        {
            name: "rates plus client fixed fee",
            base: "100", rule: rule(t, "0.1", "0", "0.05", "2"),
            hostReceives: "90.00", hostCommission: "10.00", clientCommission: "7.00", pays: "107.00",
        },
        {
            name: "zero rule passes through",
            base: "250", rule: rule(t, "0", "0", "0", "0"),
            hostReceives: "250.00", hostCommission: "0.00", clientCommission: "0.00", pays: "250.00",
        },
        {
            name: "fixed fees only",
            base: "80", rule: rule(t, "0", "5", "0", "3.50"),
            hostReceives: "75.00", hostCommission: "5.00", clientCommission: "3.50", pays: "83.50",
        },
        {
            name: "half-to-even rounding",
            base: "100.05", rule: rule(t, "0.1", "0", "0.05", "0"),
            // 10.005 rounds to 10.00 (even), 5.0025 rounds to 5.00.
            hostReceives: "90.04", hostCommission: "10.00", clientCommission: "5.00", pays: "105.05",
        },
        {
            name: "host fee consumes whole base",
            base: "10", rule: rule(t, "0.5", "5", "0", "0"),
            hostReceives: "0.00", hostCommission: "10.00", clientCommission: "0.00", pays: "10.00",
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            q, err := Compute(dec(t, tc.base), tc.rule, 2)
            if err != nil {
                t.Fatalf("unexpected error: %v", err)
            }
            checks := []struct {
                field string
                got   decimal.Decimal
                want  string
            }{
                {"hostReceives", q.HostReceives, tc.hostReceives},
                {"hostCommission", q.HostCommission, tc.hostCommission},
                {"clientCommission", q.ClientCommission, tc.clientCommission},
                {"clientPays", q.ClientPays, tc.pays},
            }
            for _, ch := range checks {
                if !ch.got.Equal(dec(t, ch.want)) {
                    t.Errorf("%s = %s, want %s", ch.field, ch.got, ch.want)
                }
            }
        })
    }
}

func TestComputeInvalidRule(t *testing.T) {
    // 100*0.9 + 20 = 110 > 100: host receivable would be negative.
    _, err := Compute(dec(t, "100"), rule(t, "0.9", "20", "0", "0"), 2)
    if err != ErrInvalidCommissionRule {
        t.Fatalf("got %v, want ErrInvalidCommissionRule", err)
    }
}

func TestComputeNegativeBase(t *testing.T) {
    _, err := Compute(dec(t, "-1"), rule(t, "0.1", "0", "0", "0"), 2)
    if err != ErrNegativeBasePrice {
        t.Fatalf("got %v, want ErrNegativeBasePrice", err)
    }
}

// TestRoundTrip reconstructs the base price from clientPays and the
// rule, which must land within one minor unit of the original.  The
// property involves only the client side, so the host side stays
// zero and cannot reject small bases.
func TestRoundTrip(t *testing.T) {
    r := rule(t, "0", "0", "0.07", "2.40")
    one := decimal.New(1, -2) // one minor unit at precision 2
    for _, base := range []string{"100", "99.99", "37.53", "1250.75", "0.01"} {
        q, err := Compute(dec(t, base), r, 2)
        if err != nil {
            t.Fatalf("base %s: %v", base, err)
        }
        // clientPays = base + base*clientRate + clientFixed
        // => base = (clientPays - clientFixed) / (1 + clientRate)
        back := q.ClientPays.Sub(r.ClientFixed).Div(decimal.NewFromInt(1).Add(r.ClientRate))
        if back.Sub(dec(t, base)).Abs().GreaterThan(one) {
            t.Errorf("base %s reconstructed as %s, drift above one minor unit", base, back)
        }
    }
}

func TestMinorUnits(t *testing.T) {
    if got := MinorUnits("EUR"); got != 2 {
        t.Errorf("EUR minor units = %d, want 2", got)
    }
    if got := MinorUnits("jpy"); got != 0 {
        t.Errorf("JPY minor units = %d, want 0", got)
    }
    if got := MinorUnits("BHD"); got != 3 {
        t.Errorf("BHD minor units = %d, want 3", got)
    }
}
