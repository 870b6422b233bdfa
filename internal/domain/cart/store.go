package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
)

// SessionKey is the session entry holding the encoded cart.
const SessionKey = "cart"

// payloadVersion is bumped whenever the encoded layout changes. Payloads
// with another version are dropped.
const payloadVersion = 1

// Session is per-visitor byte storage. Get reports ok=false when the key has
// no value.
type Session interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store binds carts to visitor sessions.
type Store struct{}

// NewStore returns a cart Store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the cart kept in sess. A missing, unreadable or corrupt
// payload yields an empty cart; failures are logged, never returned.
func (s *Store) Load(ctx context.Context, sess Session) *Cart {
	data, ok, err := sess.Get(ctx, SessionKey)
	if err != nil {
		zctx.From(ctx).Warn("Read cart from session", zap.Error(err))
		return New()
	}
	if !ok || len(data) == 0 {
		return New()
	}

	c, err := decodeCart(data)
	if err != nil {
		zctx.From(ctx).Warn("Discard corrupt cart payload", zap.Error(err), zap.Int("size", len(data)))
		return New()
	}
	return c
}

// Save writes the cart's current lines into sess, replacing any previous
// value. Call it after every mutation that must outlive the request.
func (s *Store) Save(ctx context.Context, sess Session, c *Cart) error {
	if err := sess.Set(ctx, SessionKey, encodeCart(c)); err != nil {
		return errors.Wrap(err, "write cart to session")
	}
	return nil
}

// encodeCart renders {"v":1,"lines":[{...}]}. Each line carries enough
// product data to redisplay the cart without a catalog lookup.
func encodeCart(c *Cart) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("v", func(e *jx.Encoder) { e.Int(payloadVersion) })
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range c.lines {
					encodeLine(e, l)
				}
			})
		})
	})

	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())
	return out
}

func encodeLine(e *jx.Encoder, l Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(l.Product.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(l.Product.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(l.Product.Description) })
		e.Field("category", func(e *jx.Encoder) { e.Str(l.Product.Category) })
		e.Field("price", func(e *jx.Encoder) { e.Str(l.Product.Price.String()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
	})
}

func decodeCart(data []byte) (*Cart, error) {
	var (
		version int
		lines   []Line
	)

	d := jx.DecodeBytes(data)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "v":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "version")
			}
			version = v
		case "lines":
			return d.Arr(func(d *jx.Decoder) error {
				l, err := decodeLine(d)
				if err != nil {
					return errors.Wrapf(err, "line %d", len(lines))
				}
				lines = append(lines, l)
				return nil
			})
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	if d.Next() != jx.Invalid {
		return nil, errors.New("trailing data after cart payload")
	}
	if version != payloadVersion {
		return nil, errors.Errorf("unsupported cart payload version %d", version)
	}

	c := New()
	for _, l := range lines {
		if c.index(l.Product.ID) >= 0 {
			return nil, errors.Errorf("duplicate line for product %d", l.Product.ID)
		}
		if err := c.AddItem(l.Product, l.Quantity); err != nil {
			return nil, errors.Wrapf(err, "product %d", l.Product.ID)
		}
	}
	return c, nil
}

func decodeLine(d *jx.Decoder) (Line, error) {
	var (
		p        product.Product
		quantity int

		seenID, seenPrice, seenQuantity bool
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			p.ID, err = d.Int64()
			seenID = true
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "price":
			var raw string
			if raw, err = d.Str(); err == nil {
				p.Price, err = decimal.NewFromString(raw)
			}
			seenPrice = true
		case "quantity":
			quantity, err = d.Int()
			seenQuantity = true
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return Line{}, err
	}
	switch {
	case !seenID:
		return Line{}, errors.New("missing product id")
	case !seenPrice:
		return Line{}, errors.Errorf("product %d: missing price", p.ID)
	case !seenQuantity:
		return Line{}, errors.Errorf("product %d: missing quantity", p.ID)
	}
	if p.Price.IsNegative() {
		return Line{}, errors.Errorf("negative price %s", p.Price)
	}
	return Line{Product: &p, Quantity: quantity}, nil
}
