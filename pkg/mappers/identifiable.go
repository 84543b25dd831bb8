package mappers

import (
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/network"
)

type identified interface {
	Identity() *network.Identifiable
}

func elementID[T identified](x T) string { return x.Identity().ID }

func elementName[T identified](x T) string { return x.Identity().Name }

func setElementName[T identified](x T, name string) error {
	x.Identity().Name = name
	return nil
}

func elementProperties[T identified](x T) map[string]string { return x.Identity().Properties }

// newBuilder starts a mapper with the series every element type shares:
// the id index, the name and the property columns.
func newBuilder[T identified](t ElementType, items dataframe.ItemsProvider[*network.Network, T], byID func(*network.Network, string) (T, bool)) *dataframe.MapperBuilder[*network.Network, T] {
	return dataframe.NewMapperBuilder(t.String(), items, dataframe.ByID(t.String(), byID)).
		StringsIndex("id", elementID[T]).
		Strings("name", elementName[T], setElementName[T]).
		Properties(elementProperties[T])
}
