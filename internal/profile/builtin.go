package profile

func str(name string) Property  { return Property{Name: name, Kind: KindString} }
func num(name string) Property  { return Property{Name: name, Kind: KindReal} }
func intg(name string) Property { return Property{Name: name, Kind: KindInteger} }
func list(name string) Property { return Property{Name: name, Kind: KindStringList} }

// Builtin returns the REST and RAML profile definitions every model can use.
func Builtin() []TagDef {
	verb := func(name string) TagDef {
		return TagDef{Name: name, Generals: []string{TagHTTPMethod}}
	}
	return []TagDef{
		{
			Name: TagAPI,
			Properties: []Property{
				str(PropTitle), str(PropVersion), str(PropBaseURI), str(PropBaseURIParameters),
				str(PropDescription), str(PropMediaType), str(PropProtocols), str(PropDocumentation),
				str(PropSecuritySchemes), str(PropSecuredBy),
				list(PropTypes), list(PropTraits), list(PropResourceTypes), list(PropUses),
			},
		},
		{Name: TagRAMLAPI, Generals: []string{TagAPI}},
		{
			Name:       TagResource,
			Properties: []Property{str(PropPath), str(PropDescription), str(PropIs), str(PropType), str(PropSecuredBy)},
		},
		{
			Name:       TagHTTPMethod,
			Properties: []Property{str(PropDescription), str(PropIs), str(PropProtocols), str(PropQueryParameters)},
		},
		verb(TagGet), verb(TagPost), verb(TagPut), verb(TagPatch),
		verb(TagDelete), verb(TagHead), verb(TagOptions),
		{Name: TagResourcePath, Properties: []Property{str(PropPath)}},
		{Name: TagHTTPResponse, Properties: []Property{intg(PropStatusCode), str(PropMediaType)}},
		{Name: TagHTTPRequest, Properties: []Property{str(PropMediaType)}},
		{Name: TagQueryParameter, Properties: []Property{str(PropDefault), str(PropExample)}},
		{
			Name:       TagAPIModel,
			Properties: []Property{str(PropDescription), str(PropDefault), str(PropExample), str(PropExamples)},
		},
		{Name: TagJSONSchema, Generals: []string{TagAPIModel}, Properties: []Property{str(PropSchema)}},
		{Name: TagXMLSchema, Generals: []string{TagAPIModel}, Properties: []Property{str(PropSchema)}},
		{
			Name:       TagFacetedScalar,
			Properties: []Property{str(PropDescription), str(PropDefault), str(PropExample)},
		},
		{
			Name: TagFacetedNumber,
			Properties: []Property{
				num(PropMinimum), num(PropMaximum), num(PropMultipleOf),
				{Name: PropFormat, Kind: KindEnum, Literals: NumberFormats},
			},
		},
		{
			Name:       TagFacetedString,
			Properties: []Property{str(PropPattern), intg(PropMinLength), intg(PropMaxLength), str(PropEnum)},
		},
		{
			Name:       TagFacetedFile,
			Properties: []Property{str(PropFileTypes), intg(PropMinLength), intg(PropMaxLength)},
		},
	}
}
