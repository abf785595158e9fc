package configxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/entity"
)

const flatFormXML = `<?xml version="1.0"?>
<Form>
	<Attributes>
		<Attribute>
			<Name>Object</Name>
			<Type><Type>CatalogObject.Products</Type></Type>
		</Attribute>
	</Attributes>
	<Commands>
		<Command><Name>Write</Name></Command>
	</Commands>
</Form>`

const managedFormXML = `<?xml version="1.0"?>
<ManagedForm>
	<Attributes>
		<Attribute uuid="77777777-7777-7777-7777-777777777777">
			<Properties>
				<Name>Object</Name>
				<Type><Type>CatalogObject.Products</Type></Type>
			</Properties>
		</Attribute>
	</Attributes>
	<Commands>
		<Command uuid="88888888-8888-8888-8888-888888888888">
			<Properties><Name>Write</Name></Properties>
		</Command>
	</Commands>
</ManagedForm>`

func TestParseFormFlatVariant(t *testing.T) {
	e, err := ParseForm("Catalogs/Products/Forms/ItemForm/Form.xml", []byte(flatFormXML))
	require.NoError(t, err)
	require.NotNil(t, e)
	assertItemForm(t, e)
}

func TestParseFormManagedVariant(t *testing.T) {
	e, err := ParseForm("Catalogs/Products/Forms/ItemForm/Form.xml", []byte(managedFormXML))
	require.NoError(t, err)
	require.NotNil(t, e)
	assertItemForm(t, e)
}

func assertItemForm(t *testing.T, e *entity.Entity) {
	t.Helper()
	assert.Equal(t, "Catalogs.Products.Form.ItemForm", e.QualifiedName)
	assert.Equal(t, "ItemForm", e.DisplayName)
	assert.Equal(t, entity.KindForm, e.Kind)
	assert.Equal(t, entity.TypeForm, e.Type)
	require.Len(t, e.Properties, 1)
	assert.Equal(t, "Object", e.Properties[0].Name)
	assert.Equal(t, "CatalogObject.Products", e.Properties[0].Type)
	assert.Contains(t, e.References, "CatalogObject.Products")
	assert.Contains(t, e.References, "Catalogs.Products")

	commands, ok := e.Extended["commands"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Write"}, commands)
}

func TestParseFormNonFormPathSkipped(t *testing.T) {
	e, err := ParseForm("Catalogs/Products/Catalog.xml", []byte(flatFormXML))
	require.NoError(t, err)
	assert.Nil(t, e)
}
