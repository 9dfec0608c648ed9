package filter

import "go.mongodb.org/mongo-driver/v2/bson"

// BSON translates the criteria into a MongoDB query document.
func (c Criteria) BSON() bson.D {
	doc := bson.D{}
	for _, p := range c.preds {
		doc = append(doc, bson.E{Key: p.FieldName(), Value: predicateValue(p)})
	}
	return doc
}

func predicateValue(p Predicate) any {
	switch p := p.(type) {
	case Equals:
		return p.Value
	case RangeInclusive:
		bounds := bson.D{}
		if p.Lo != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *p.Lo})
		}
		if p.Hi != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *p.Hi})
		}
		return bounds
	case IsNull:
		return nil
	case IsNotNull:
		return bson.D{{Key: "$ne", Value: nil}}
	case ContainsAll:
		return bson.D{{Key: "$all", Value: p.Values}}
	}
	return nil
}
